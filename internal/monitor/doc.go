// Package monitor detects abusive authentication patterns.
//
// [Monitor] keeps three sliding windows: failed logins per IP, failed logins
// per username, and registration attempts per IP. Reaching a threshold raises
// an [Event], which is stored in a bounded ring and handed to the optional
// [AlertFunc]. By default an alert is raised on every attempt at or above the
// threshold; Config.DeduplicateAlerts raises only on the attempt that reaches
// it.
package monitor
