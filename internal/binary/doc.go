// Package binary downloads, verifies, extracts and installs the neo4j-mcp
// release binary.
//
// # Pipeline
//
// Installer.Install runs these steps in order, never going back:
//
//  1. Detect the host platform (platform.Detector).
//  2. Resolve the release tag. NEO4J_MCP_VERSION wins over a requested
//     version, and the latest GitHub release is used when neither is set.
//  3. If versions/<tag>/neo4j-mcp already exists in the cache and Force is
//     off, skip to step 7.
//  4. Download the asset to <archive>.tmp.
//  5. Verify it against <tag>/neo4j-mcp_<tag-no-v>_checksums.txt.
//  6. Rename the archive into place and extract the binary into the cache.
//  7. Copy the cached binary into the install directory.
//
// # Verification
//
// The checksums manifest is optional. A 404 or 403 for it, a host that
// cannot be reached, or a manifest without an entry for the asset all
// skip verification; VerificationResult.Skipped says which. Set
// Options.RequireChecksum to turn a skip into ChecksumUnavailableError.
// A digest that does not match is always fatal and the archive is deleted.
//
// When a key ring is configured nothing is skipped: the manifest must exist,
// list the asset and carry a detached OpenPGP signature (<manifest>.asc or
// <manifest>.sig), otherwise Install fails with SignatureError.
//
// # Atomicity
//
// Every file the pipeline leaves behind under its final name is written to
// a ".tmp" sibling first and renamed into place. An interrupted run leaves
// at most stale temp files, which the next run overwrites. Concurrent runs
// against one cache root are serialized by lock.Acquire.
//
// # Usage
//
//	inst, err := binary.NewInstaller(binary.Config{
//	    Locator: locator,
//	    Logger:  logger,
//	})
//	if err != nil {
//	    return err
//	}
//
//	result, err := inst.Install(ctx, binary.Options{
//	    Repo:   "neo4j/mcp",
//	    Verify: true,
//	})
package binary
