package main

import (
	"os"
	rt "runtime"
)

type app struct{}

func (app) main() {
	os.Exit(3)
}

func helper() {
	os.Exit(2)
}

func main() {
	defer helper()
	os.Exit(1)  // want "direct call to os.Exit is not allowed in main"
	rt.Goexit() // want "direct call to runtime.Goexit is not allowed in main"
}
