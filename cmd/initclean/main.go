package main

import "github.com/mvp-joe/initclean/internal/cli"

func main() {
	cli.Execute()
}
