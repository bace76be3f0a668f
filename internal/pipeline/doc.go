// Package pipeline runs the crawl of one line as a sequence of steps.
//
// A crawl has three steps, each filling part of a model.LineCrawl:
//
//  1. timetables: read the station timetables from the line page
//  2. trains: read every timetable and keep one record per train id
//  3. stops: read the stops of each recorded train
//
// All trains are collected before any train page is read, so a train that
// departs from several stations is fetched once. The first failing step
// aborts the crawl.
package pipeline
