// Package video holds the lookup and download logic of the form: URL
// validation, platform detection, metadata fetchers and the download trigger
// that hands a backend URL to a Launcher.
package video
