package toolcheck

import (
	"femcheck.openqed.org/internal/manifest"
	"femcheck.openqed.org/internal/models"
)

// ApplyPlatformAdvice annotates a report with the install guide's known
// platform failure modes, then recomputes the overall status.
func ApplyPlatformAdvice(report *models.Report, env Env) {
	// The gmsh pip wheel is known to break on Apple Silicon. When the
	// binding fails but the standalone binary works, the toolchain is
	// usable: soften the failure to a warning with the documented fix.
	if env.GOOS == "darwin" && env.GOARCH == "arm64" {
		binding := report.Result(manifest.CheckGmshPython)
		binary := report.Result(manifest.CheckGmshBinary)
		if binding != nil && binding.Status == models.StatusFail &&
			binary != nil && binary.Status == models.StatusPass {
			binding.Status = models.StatusWarn
			binding.Advice = "the gmsh Python wheel is known to fail on Apple Silicon; " +
				"install the gmsh binary from a package manager (brew install gmsh) and use it directly"
		}
	}

	// One Windows installer variant ships ElmerSolver without ElmerGrid.
	// A missing ElmerGrid next to a working solver is that variant, not a
	// generic missing install.
	if env.GOOS == "windows" {
		grid := report.Result(manifest.CheckElmerGrid)
		solver := report.Result(manifest.CheckElmerSolver)
		if grid != nil && grid.Status == models.StatusFail &&
			solver != nil && solver.Status == models.StatusPass {
			grid.Advice = "this looks like the Windows installer variant that omits ElmerGrid; " +
				"reinstall Elmer using the installer that bundles ElmerGrid"
		}
	}

	report.Aggregate()
}
