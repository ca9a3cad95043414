// Package engine talks to the leaf-ipc sidecar that hosts the networking
// core and the leaf proxy.
//
// The sidecar is a child process. Commands are written to its stdin and
// status changes are read from its stdout, one JSON object per line:
//
//	-> {"command":"run_leaf"}
//	<- {"domain":"leaf","type":"starting"}
//	<- {"domain":"leaf","type":"started"}
//	<- {"domain":"core","type":"error","data":{"error":"tun device busy"}}
//
// Every status line is decoded into a status value and delivered to a
// status.Observer. Sidecar also answers the synchronous queries the quit
// sequence needs (IsEngineRunning, IsProxyRunning) and performs an ordered
// shutdown with a bounded wait.
//
// Lines that are not status events are logged. Stderr is logged verbatim.
package engine
