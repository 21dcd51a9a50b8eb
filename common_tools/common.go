// Package common_tools provides the tools agentstudio exposes to agents and
// the shared plumbing they are built on.
//
// Available tools:
//   - dockerhub_search: Search images and tags from Docker Hub
//   - brave_search: Web search through the Brave Search API (opt-in)
//
// Tools are declared through ToolConfiguration entries. Each entry registers
// itself in the package catalog from an init function, and
// ToolRegistry.Configure decides from the flat property environment which of
// them become live tools.
package common_tools
