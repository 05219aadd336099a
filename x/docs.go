/*
Package x contains some standard extensions

Extensions implement common functionality (auth, mint, burn,
transfers) and are combined into an application stack.

This top-level package contains types shared between the
extensions, mainly the Authenticator abstraction that decouples
handlers from any concrete signature verification scheme.
*/
package x
