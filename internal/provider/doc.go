// Package provider implements documentation capabilities against the AWS
// documentation site and its search and recommendations APIs.
//
// The Provider interface covers the three operations the tool layer needs:
// reading a page as markdown with pagination, free-text search, and
// content recommendations for a page. AWSDocs is the live implementation;
// tests substitute their own.
//
// Page fetches go through an optional SQLite-backed cache and search and
// recommendation results through an optional in-memory TTL memo, so
// repeated tool calls do not hammer the upstream APIs.
package provider
