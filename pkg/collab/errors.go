package collab

import "errors"

// Sentinel errors returned by collaborator implementations, following the
// teacher's pkg/queue/types.go style of small, wrapped sentinels.
var (
	// ErrJobNotFound indicates the requested job id has no stored record.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoSEsForSite indicates the site catalog has no storage elements
	// registered for a site.
	ErrNoSEsForSite = errors.New("no storage elements for site")

	// ErrStagerUnavailable indicates the stager RPC could not be reached.
	ErrStagerUnavailable = errors.New("stager client unavailable")

	// ErrOptimizerParamNotFound indicates no optimizer record is stored
	// under the requested name. PostgresJobStore.RetrieveOptimizerParam
	// does not return it: it reports a missing record as (nil, nil).
	ErrOptimizerParamNotFound = errors.New("optimizer param not found")

	// ErrFileCatalogUnavailable indicates the file catalog RPC could not
	// be reached.
	ErrFileCatalogUnavailable = errors.New("file catalog unavailable")
)
