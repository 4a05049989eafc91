// Package docdex turns documentation sources into a searchable semantic
// index. It crawls web sites or file trees, normalizes pages to markdown,
// splits them into chunks, embeds the chunks, and keeps a vector store in
// sync across repeated crawls so that re-crawls only touch what changed.
// Retrieval returns ranked, cited passages for consumption by LLM agents
// over MCP or by humans over the CLI.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/).
package docdex
