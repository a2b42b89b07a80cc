// Package sections provides the default page sections rendered around an
// article: analytics, the top ad, header, article head, onward journey,
// comments, site footer and copyright line.
//
// Every section receives a [props.Bundle] explicitly. Sections rendered
// inside a layout can also read the published [props.Shared] value.
package sections
