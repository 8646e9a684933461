// Package main is the entry point for PageKit.
package main

func main() {
	Execute()
}
