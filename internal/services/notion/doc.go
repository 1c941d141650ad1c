// Package notion publishes summary records as pages in a Notion database.
//
// Publishing is two calls: create the page with its properties and a small
// preamble, then append the rendered summary, transcript, and info sections.
// Appends are chunked because the API refuses more than 100 blocks per
// request.
package notion
