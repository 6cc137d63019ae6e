// Copyright © 2024 The ELPS authors

package lint

import (
	"maps"
	"slices"
)

// knownGlobals are names provided by the host environment. References to
// them are never reported as undefined.
var knownGlobals = setOf(
	// ECMAScript
	"globalThis", "undefined", "NaN", "Infinity", "eval", "isFinite", "isNaN",
	"parseFloat", "parseInt", "decodeURI", "decodeURIComponent", "encodeURI",
	"encodeURIComponent", "escape", "unescape", "arguments",
	"Object", "Function", "Array", "Number", "Boolean", "String", "Symbol",
	"BigInt", "Math", "Date", "RegExp", "JSON", "Reflect", "Proxy", "Promise",
	"Error", "EvalError", "RangeError", "ReferenceError", "SyntaxError",
	"TypeError", "URIError", "AggregateError",
	"Map", "Set", "WeakMap", "WeakSet", "WeakRef", "FinalizationRegistry",
	"ArrayBuffer", "SharedArrayBuffer", "DataView", "Atomics",
	"Int8Array", "Uint8Array", "Uint8ClampedArray", "Int16Array",
	"Uint16Array", "Int32Array", "Uint32Array", "Float32Array",
	"Float64Array", "BigInt64Array", "BigUint64Array", "Intl",

	// Browser and web workers
	"window", "self", "document", "navigator", "location", "history",
	"console", "alert", "confirm", "prompt", "fetch", "Request", "Response",
	"Headers", "URL", "URLSearchParams", "FormData", "Blob", "File",
	"FileReader", "AbortController", "AbortSignal", "Event", "EventTarget",
	"CustomEvent", "WebSocket", "Worker", "XMLHttpRequest", "localStorage",
	"sessionStorage", "setTimeout", "clearTimeout", "setInterval",
	"clearInterval", "queueMicrotask", "requestAnimationFrame",
	"cancelAnimationFrame", "structuredClone", "atob", "btoa", "crypto",
	"performance", "TextEncoder", "TextDecoder", "HTMLElement", "Element",
	"Node", "MutationObserver", "IntersectionObserver", "ResizeObserver",

	// Node.js
	"require", "module", "exports", "process", "Buffer", "global",
	"__dirname", "__filename", "setImmediate", "clearImmediate",
)

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// IsKnownGlobal reports whether name is provided by a common host
// environment.
func IsKnownGlobal(name string) bool { return knownGlobals[name] }

// KnownGlobals returns the sorted names IsKnownGlobal accepts.
func KnownGlobals() []string {
	return slices.Sorted(maps.Keys(knownGlobals))
}
