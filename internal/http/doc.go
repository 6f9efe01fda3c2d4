// Package http serves the admin console over HTTP.
//
// Every route except /healthz passes through RequestLogger; every /console
// route except /console/session also passes through RequireSession, which
// answers 303 See Other to "/" for HTML clients and 401 {"redirect":"/"}
// otherwise.
//
//   - GET /console/meetings?page=&size=: mounts the meetings screen on the
//     first visit and returns the requested page.
//   - POST /console/meetings/search, POST /console/meetings/reset.
//   - GET /console/meetings/export: xlsx download, or 204 with an
//     X-Console-Notice header when the list is empty.
//   - POST /console/meetings, PUT /console/meetings/{id},
//     DELETE /console/meetings/{id}, POST /console/meetings/{id}/status.
//   - The same routes under /console/users for the users screen.
//   - GET /console/schedule, PUT /console/schedule: the meeting account's
//     schedule dashboard.
//   - POST /console/session, DELETE /console/session: store or drop the
//     console cookies for a role.
//
// JSON responses use the envelope {"data":…, "notices":[{"level","text"}]}.
// Screen state lives in a Workspace kept per token by the Workspaces registry.
package http
