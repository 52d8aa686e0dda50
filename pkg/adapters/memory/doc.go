// Package memory provides an in-process session store.
package memory
