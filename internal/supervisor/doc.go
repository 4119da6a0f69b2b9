// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

/*
Package supervisor runs Reactbar's long-lived services under a suture v4
supervisor tree.

	reactbar (root)
	├── data-layer      store maintenance
	├── session-layer   render sessions, pollers
	└── api-layer       reference counting service

Each layer restarts its own children with the configured failure threshold,
decay and backoff. Supervisor events are logged through sutureslog.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddDataService(store.NewMaintainer(backend, 5*time.Minute))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
