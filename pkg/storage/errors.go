package storage

type storageError string

const (
	ErrNotFound = storageError("not found")

	// ErrConflict is returned by SessionStore.Create when a session for the
	// same bus number already exists. The stores guarantee that the conflict
	// check and the insert happen as a single atomic operation.
	ErrConflict = storageError("conflict")
)

func (e storageError) Error() string {
	return string(e)
}
