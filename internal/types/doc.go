/*
Package types defines data structures shared across wsprobe.

# Overview

The types package provides shared type definitions for:
  - Connection status and log directions
  - WebSocket handshake options (headers, subprotocols, TLS)
  - .ws file definitions (connection + message sequence)
  - Persisted library data (saved URLs, snippets, templates)
  - Persisted UI preferences

# Enumerations

Status and Direction are small integer enums with String methods. Direction
also implements encoding.TextMarshaler so exported logs read "sent",
"received" or "system" instead of numbers.

# Field Tags

Library types carry JSON and YAML tags because they are stored as JSON in the
key-value store and exported/imported as YAML bundles. Snippet.BuiltIn is
never serialized: built-in snippets only exist in memory.
*/
package types
