package main

import "github.com/vibast-solutions/ms-go-idpay/cmd"

func main() {
	cmd.Execute()
}
