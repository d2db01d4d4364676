// Package middleman sits between user interfaces and the vendor
// backends. It aggregates every registered backend behind one device
// list, guards the mutual-exclusion rule between hardware effects and
// software-effect renderer processes, and replays whatever was active
// after events like resume from suspend.
//
//	UI / CLI
//	   │
//	   ▼
//	Middleman ──── procpid (PID files, software state)
//	   │     └──── history (applied-effect log)
//	   ▼
//	Backend adapters (openrazer, ...)
package middleman
