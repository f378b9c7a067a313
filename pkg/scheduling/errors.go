// Package scheduling implements the job scheduling optimizer's decision
// core: site filtering, replica/site intersection, the staging decision,
// stage request construction, dispatch, and the final site-assignment
// summary. Components A-H are pure functions over pkg/models values;
// the Orchestrator (I) sequences them against pkg/collab collaborators.
package scheduling

import "errors"

// Sentinel errors returned by the scheduling core's components, so callers
// of those functions can errors.Is against them. The orchestrator reports
// them to its own caller as the message text of a Fail outcome.
var (
	ErrImpossibleSiteRequirement = errors.New("impossible site requirement")
	ErrNoSiteCandidates          = errors.New("no possible site candidates")
	ErrEmptyIntersection         = errors.New("impossible InputData * Site requirements")
	ErrIncompleteReplicas        = errors.New("site candidates do not have all the input data")
	ErrNoTapeReplicas            = errors.New("cannot find tape replicas")
	ErrNoLocalSEs                = errors.New("no local SEs for site")
	ErrStageNotAllowed           = errors.New("stage not allowed")
	ErrInvalidRescheduleCounter  = errors.New("invalid reschedule counter")
)
