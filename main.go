// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/linthub/linthub/cmd/linthub"

func main() {
	cmd.Execute()
}
