// Package cache provides the URL-keyed response cache.
//
// The cache is a single JSON object mapping request URLs to raw response
// bodies:
//
//	{"https://ekitan.com/timetable/railway/line/1234": "<!DOCTYPE html>..."}
//
// A Store reads the file lazily on first access and rewrites the whole file
// after every Put, so a run that dies after N downloads leaves N entries on
// disk. Once a URL is cached it is never fetched again while the file exists.
//
// # Usage
//
//	store := cache.NewStore("./timetable_cache.json", cache.WithLogger(logger))
//	body, ok, err := store.Get(url)
//	...
//	err = store.Put(url, body)
//	...
//	err = store.Flush() // at exit
package cache
