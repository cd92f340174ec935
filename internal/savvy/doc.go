// Package savvy reads sign content from the SigningSavvy JSON facade and
// normalizes its nested payloads into canonical records. Fetching is polite:
// a fixed courtesy pause follows every successful read. Parsing is lenient at
// the edges (a broken usage example is dropped, not fatal) and strict at the
// top (a payload without its required shape fails the one frontier item it
// belongs to).
package savvy
