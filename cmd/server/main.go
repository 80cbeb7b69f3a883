package main

import "flexipayslip/internal/app/server"

func main() {
	server.Run()
}
