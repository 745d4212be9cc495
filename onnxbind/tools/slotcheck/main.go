// Command slotcheck verifies the hand-maintained OrtApi slot table in
// internal/api/v23 against the real onnxruntime_c_api.h. It downloads the
// header for the given release, parses the OrtApi struct to recover the
// slot index of every function pointer, and compares the indices of the
// named fields of v23.API (pads included) against the header. Any drift is
// a memory-corruption bug waiting to happen, so mismatches exit nonzero.
//
// Usage:
//
//	go run ./onnxbind/tools/slotcheck -version 1.23.0
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"unsafe"

	v23 "github.com/substrate-ml/onnxbind/onnxbind/internal/api/v23"
)

const headerURLTemplate = "https://raw.githubusercontent.com/microsoft/onnxruntime/v%s/include/onnxruntime/core/session/onnxruntime_c_api.h"

var (
	macroPattern   = regexp.MustCompile(`ORT_API2_STATUS\(([A-Za-z0-9_]+)`)
	releasePattern = regexp.MustCompile(`ORT_CLASS_RELEASE\(([A-Za-z0-9_]+)\)`)
	directPattern  = regexp.MustCompile(`\*\s*([A-Z][a-zA-Z0-9_]*)\)`)
)

func main() {
	version := flag.String("version", "1.23.0", "ONNX Runtime release (e.g. 1.23.0)")
	flag.Parse()

	headerSlots, err := fetchHeaderSlots(*version)
	if err != nil {
		log.Fatalf("Failed to parse header: %v", err)
	}
	log.Printf("Header declares %d OrtApi slots", len(headerSlots))

	mismatches := 0
	typ := reflect.TypeOf(v23.API{})
	ptrSize := unsafe.Sizeof(uintptr(0))
	for i := range typ.NumField() {
		field := typ.Field(i)
		if field.Name == "_" {
			continue
		}
		slot := int(field.Offset / ptrSize)
		want, ok := headerSlots[field.Name]
		if !ok {
			fmt.Printf("MISSING  %-40s not in header\n", field.Name)
			mismatches++
			continue
		}
		if slot != want {
			fmt.Printf("MISMATCH %-40s struct slot %d, header slot %d\n", field.Name, slot, want)
			mismatches++
		}
	}

	if total := int(typ.Size() / ptrSize); total > len(headerSlots) {
		fmt.Printf("MISMATCH API spans %d slots, header declares %d\n", total, len(headerSlots))
		mismatches++
	}

	if mismatches > 0 {
		log.Fatalf("%d slot mismatches against onnxruntime %s", mismatches, *version)
	}
	log.Printf("All named slots match onnxruntime %s", *version)
}

// fetchHeaderSlots downloads onnxruntime_c_api.h and returns the slot index
// of every function pointer declared in the OrtApi struct, in order.
func fetchHeaderSlots(version string) (map[string]int, error) {
	url := fmt.Sprintf(headerURLTemplate, version)
	log.Printf("Downloading %s", url)
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download header: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download header: HTTP %d", resp.StatusCode)
	}

	slots := make(map[string]int)
	index := 0
	add := func(name string) {
		slots[name] = index
		index++
	}
	isComment := func(s string) bool {
		return s == "" || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*") ||
			strings.HasPrefix(s, "*") || strings.HasPrefix(s, "///")
	}

	scanner := bufio.NewScanner(resp.Body)
	inStruct := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "struct OrtApi {") {
			inStruct = true
			continue
		}
		if inStruct && strings.HasPrefix(strings.TrimSpace(line), "};") {
			break
		}
		if !inStruct {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if isComment(trimmed) {
			continue
		}
		if match := macroPattern.FindStringSubmatch(line); match != nil {
			add(match[1])
			continue
		}
		if match := releasePattern.FindStringSubmatch(line); match != nil {
			add("Release" + match[1])
			continue
		}
		if match := directPattern.FindStringSubmatch(line); match != nil {
			add(match[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}
