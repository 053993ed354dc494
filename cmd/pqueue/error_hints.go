package main

import (
	"errors"

	"pqueue/internal/queue"
	"pqueue/internal/queueaccess"
)

// errorHint suggests a next step for err, or returns "" when there is none.
func errorHint(err error) string {
	if errors.Is(err, queueaccess.ErrLocked) {
		return "another pqueue command is modifying this database; retry when it finishes"
	}
	switch queue.Kind(err) {
	case "configuration":
		return "check the [store] and [queue] sections with 'pqueue config validate'"
	case "schema":
		return "the table exists with an incompatible layout; point store.table at another table"
	case "storage":
		return "run 'pqueue health' to inspect the database"
	}
	return ""
}
