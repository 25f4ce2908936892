package main

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// knownLibcFuncs holds C library functions sources call without the analyzer reading
// their headers.
type knownLibcFuncs struct {
	known map[string]libcFunc
}

type libcFunc struct {
	header    string
	prototype string
	noreturn  bool
}

func newKnownLibcFuncs(noreturn []string) *knownLibcFuncs {
	predefined := map[string]libcFunc{
		// stdlib.h
		"_Exit":  {header: "stdlib.h", prototype: "void _Exit(int status);", noreturn: true},
		"abort":  {header: "stdlib.h", prototype: "void abort(void);", noreturn: true},
		"abs":    {header: "stdlib.h", prototype: "int abs(int j);"},
		"atoi":   {header: "stdlib.h", prototype: "int atoi(const char *s);"},
		"atol":   {header: "stdlib.h", prototype: "long atol(const char *s);"},
		"calloc": {header: "stdlib.h", prototype: "void *calloc(unsigned long n, unsigned long size);"},
		"exit":   {header: "stdlib.h", prototype: "void exit(int status);", noreturn: true},
		"free":   {header: "stdlib.h", prototype: "void free(void *p);"},
		"labs":   {header: "stdlib.h", prototype: "long labs(long j);"},
		"malloc": {header: "stdlib.h", prototype: "void *malloc(unsigned long size);"},
		"rand":   {header: "stdlib.h", prototype: "int rand(void);"},

		// stdio.h
		"getchar": {header: "stdio.h", prototype: "int getchar(void);"},
		"printf":  {header: "stdio.h", prototype: "int printf(const char *format, ...);"},
		"putchar": {header: "stdio.h", prototype: "int putchar(int c);"},
		"puts":    {header: "stdio.h", prototype: "int puts(const char *s);"},

		// string.h
		"memcpy": {header: "string.h", prototype: "void *memcpy(void *dst, const void *src, unsigned long n);"},
		"memset": {header: "string.h", prototype: "void *memset(void *s, int c, unsigned long n);"},
		"strcmp": {header: "string.h", prototype: "int strcmp(const char *a, const char *b);"},
		"strlen": {header: "string.h", prototype: "unsigned long strlen(const char *s);"},
	}

	known := maps.Clone(predefined)
	for _, name := range noreturn {
		f := known[name]
		f.noreturn = true
		known[name] = f
	}

	return &knownLibcFuncs{known: known}
}

// prelude returns declarations of the known functions having a prototype grouped by
// header.
func (k *knownLibcFuncs) prelude() []byte {
	names := slices.SortedFunc(maps.Keys(k.known), func(a, b string) int {
		return cmp.Or(cmp.Compare(k.known[a].header, k.known[b].header), cmp.Compare(a, b))
	})

	var buf strings.Builder
	var header string
	for _, name := range names {
		f := k.known[name]
		if f.prototype == "" {
			continue
		}
		if f.header != header {
			header = f.header
			buf.WriteString("/* <" + header + "> */\n")
		}
		buf.WriteString(f.prototype)
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

// noReturn returns names of the functions never returning to their callers.
func (k *knownLibcFuncs) noReturn() []string {
	var res []string
	for _, name := range slices.Sorted(maps.Keys(k.known)) {
		if k.known[name].noreturn {
			res = append(res, name)
		}
	}
	return res
}
