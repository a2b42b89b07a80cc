// Package markup provides the HTML leaf widgets of a page and the helpers
// that turn an element tree into a queryable document.
package markup
