// Package web serves the LifeOS shell over HTTP: the dashboard with its
// navigation and widgets, the standalone module apps, settings, the
// background-service bridge and the browser event stream.
//
// Feature areas live under modules/ and are composed onto one mux by app;
// the server adds health, metrics and static asset routes around them.
package web
