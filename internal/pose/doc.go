// Package pose abstracts where piece poses come from. A Source yields the
// latest known world pose of every tracked piece as an immutable snapshot;
// pieces not currently present are simply absent from the snapshot.
//
// Two interchangeable providers implement the contract: ManualSource backs
// direct-manipulation input (authoring and touch), TrackingSource backs a
// continuous optical-tracking feed. The rest of the pipeline never learns
// which one it is talking to. Neither provider blocks; snapshot calls return
// cached state synchronously.
package pose
