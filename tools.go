// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

//go:build tools

// Package main pins the ginkgo CLI used by the integration suites.
package main

import (
	_ "github.com/onsi/ginkgo/v2/ginkgo"
)
