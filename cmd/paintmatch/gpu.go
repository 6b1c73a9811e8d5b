//go:build !nogpu

package main

import _ "github.com/gogpu/paintmatch/gpu" // enable GPU scoring
