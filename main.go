// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package main

import (
	cmd "github.com/digitalhand/ros2-setup/cmd"
)

func main() {
	cmd.Execute()
}
