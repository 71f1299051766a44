package model

import "net/url"

// PlatformBaseURL is the public site of the tracked platform
const PlatformBaseURL = "https://leetcode.com"

// ProblemURL returns the problem page for titleSlug
func ProblemURL(titleSlug string) string {
	return PlatformBaseURL + "/problems/" + url.PathEscape(titleSlug) + "/"
}

// ProfileURL returns the public profile page for username
func ProfileURL(username string) string {
	return PlatformBaseURL + "/" + url.PathEscape(username)
}
