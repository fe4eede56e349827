// Package pathutil matches path templates against filter patterns and
// sanitizes output file paths.
//
// A [Pattern] is a path template whose segments may be wildcards:
//
//	/pets/*          one segment after /pets
//	/pets/**         /pets and everything below it
//	/pet.put         only the put operation of /pet
//	/pet/{id}        any template with a parameter at that position
//
// [OutputFile] checks the file a combined document is written to. It
// refuses symlinks, directories and the combine's own input files:
//
//	out, err := pathutil.OutputFile(flags.Output, sources...)
//	if err != nil {
//	    return err
//	}
package pathutil
