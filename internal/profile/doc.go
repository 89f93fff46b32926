// Package profile holds the embedded catalog of target profiles.
//
// A profile ties a firmware image to everything a session needs to know
// about it: where its trace ring buffer lives, which layout candidates to
// probe, how to name and decode each trace variant, and which test entry
// points and counters its on-target test suite exposes.
//
// The catalog ships embedded in the binary (profiles.yaml) so the tool works
// without any external configuration. New firmware images are added by
// extending the catalog; see urls.ContributingProfiles.
package profile
