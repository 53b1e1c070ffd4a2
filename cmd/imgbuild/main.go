// SPDX-License-Identifier: MPL-2.0

package main

func main() {
	execute()
}
