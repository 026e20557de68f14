package main

import "os"

func fail() {
	os.Exit(2)
}

func main() {
	defer func() {}()
	if len(os.Args) > 3 {
		fail()
	}
	func() {
		os.Exit(1) // want "os.Exit in main.main skips deferred calls"
	}()
	os.Exit(0) // want "os.Exit in main.main skips deferred calls"
}
