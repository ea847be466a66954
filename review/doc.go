// Package review holds the sample code review pipeline: five tools that
// score a snippet of code and the node functions that wire them into a
// graph.
//
// The pipeline runs extract_functions → check_complexity → detect_issues →
// suggest_improvements → evaluate_quality, and evaluate_quality loops back to
// suggest_improvements while quality_score is below quality_threshold
// (DefaultQualityThreshold when the state does not set one).
package review
