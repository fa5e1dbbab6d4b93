package main

import "leavemind/internal/app/server"

func main() {
	server.Run()
}
