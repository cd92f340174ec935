// Package anki is the AnkiConnect v6 client. It speaks the single-endpoint
// JSON-RPC dialect AnkiConnect exposes: every call is a POST of
// {action, params, version} and every reply is an envelope holding exactly
// an error slot and a result slot. Anything else coming back is treated as a
// protocol violation and aborts the run.
package anki
