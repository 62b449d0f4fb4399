package main

import (
	server "github.com/763021701/ttt-plus-plus/adaptation/cmd/server"
)

func main() {
	server.Main()
}
