// Package responses writes the HTML, XML and JSON bodies mdsite answers with.
//
// Every writer takes an explicit Context naming the response content type, so
// handlers never share a process-wide response mode.
package responses
