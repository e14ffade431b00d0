// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/xensor/potholemap/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
