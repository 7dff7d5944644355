package main

import (
	"github.com/slimtoolkit/fstrace/pkg/app/tracer"
)

func main() {
	tracer.Run()
}
