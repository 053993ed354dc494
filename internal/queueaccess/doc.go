// Package queueaccess opens queue engines from application configuration.
//
// It translates config.Config into queue.Options and, for commands that
// mutate a file-backed store, holds an advisory flock on "<database>.lock"
// for the lifetime of the session so concurrent pqueue invocations fail fast
// instead of racing on the same queue.
package queueaccess
