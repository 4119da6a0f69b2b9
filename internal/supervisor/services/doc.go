// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

// Package services adapts Reactbar components to suture.Service.
//
// HTTPServerService turns the ListenAndServe/Shutdown pair of the reference
// counting service into a context-driven Serve. SessionService performs a
// render session's initial load and closes the session when its context
// ends. store.Maintainer implements Serve itself and is added to the data
// layer directly.
package services
