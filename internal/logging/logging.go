/*
Copyright 2025 The Packmate Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging provides logger construction and the verbosity levels used
// with logr's V() throughout the optimizer.
package logging

import (
	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	ctrl "sigs.k8s.io/controller-runtime"
	crzap "sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Verbosity levels. INFO is always emitted; DEBUG and TRACE require the
// logger to be constructed with a matching level.
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// NewLogger builds the process logger. Development mode switches to the
// human-readable console encoder and enables DEBUG verbosity.
func NewLogger(devMode bool) logr.Logger {
	opts := []crzap.Opts{crzap.UseDevMode(devMode)}
	if devMode {
		opts = append(opts, crzap.Level(zapcore.Level(-DEBUG)))
	}
	return crzap.New(opts...)
}

// NewTestLogger installs a development-mode logger as the controller-runtime
// global logger so that test output carries component logs.
func NewTestLogger() logr.Logger {
	logger := crzap.New(crzap.UseDevMode(true))
	ctrl.SetLogger(logger)
	return logger
}
