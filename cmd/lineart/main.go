package main

import "github.com/anime-shed/lineart-prep/internal/cli"

func main() {
	cli.Execute()
}
