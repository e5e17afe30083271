// Package service is the single entry point into the catalog.
//
// It serialises every call (searches splay, so even lookups write), stamps
// committed borrow/return moves with a sequence id, appends them to the
// entry WAL and queues an event in the outbox. Transports (gRPC, HTTP, the
// interactive menu) sit on top of it and never touch the catalog directly.
package service
