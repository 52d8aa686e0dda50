// Package redis provides a shared, expiring session store and a distributed
// session lock on Redis, for running several HTTP replicas side by side.
package redis
