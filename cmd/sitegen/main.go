// Package main is the entry point for the sitegen website generator. The
// default command serves the HTTP API; migrate and generate are
// maintenance and debugging helpers.
package main

func main() {
	Execute()
}
