// Package tools defines the documentation tool registry: tool descriptors
// with their JSON Schemas, argument decoding with defaults, and the plain
// text formatting of search and recommendation results.
package tools
