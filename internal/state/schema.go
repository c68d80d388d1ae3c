package state

// versionRecordSchema validates the file-backed state document on load, so a
// hand-edited or truncated state file is rejected instead of silently feeding
// bad data into the comparison logic.
const versionRecordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "VersionRecord",
  "type": "object",
  "required": ["source_identifier", "downloaded_at", "updated_at"],
  "additionalProperties": false,
  "properties": {
    "source_identifier": { "type": "string", "minLength": 1 },
    "scraped_version": { "type": "string" },
    "manifest_version_name": { "type": "string" },
    "manifest_version_code": { "type": "string" },
    "filename": { "type": "string" },
    "downloaded_at": { "type": "string", "format": "date-time" },
    "updated_at": { "type": "string", "format": "date-time" }
  }
}`
