// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/hyprsupreme/hyprsupreme/cmd/hyprsupreme"

func main() {
	cmd.Execute()
}
