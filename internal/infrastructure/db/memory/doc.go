// Package memory provides in-process implementations of the account store,
// address store, session store, reset ticket store and registration locker.
//
// They back the service when STORE_DRIVER=memory (local development, demos)
// and are shared by the service tests. Every store is safe for concurrent use.
package memory
