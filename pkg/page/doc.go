// Package page provides Layout, the article page shell.
//
// Layout renders the analytics beacon, top ad, header, article head, the
// caller's content, the copyright footer and the optional onward journey,
// comments and site footer sections, each gated by a feature flag. While
// mounted it tracks the active breakpoint through an injected [Source] and,
// with the ads flag on, initializes the ad service and every ad slot on the
// page in a task bound to its lifetime.
//
// Content children that implement [props.Receiver] receive the passthrough
// props and the current breakpoint. Children are wrapped in a default grid
// container unless one of them declares its own or the default container is
// disabled.
package page
