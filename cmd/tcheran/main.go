// Command tcheran runs the engine as a UCI protocol handler over stdio.
package main

import (
	"github.com/jgilchrist/tcheran/internal/uci"
)

func main() {
	protocol := uci.New()
	protocol.Run()
}
