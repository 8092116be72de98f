// Package extract unpacks the source archive into a scratch directory.
//
// Every backend writes into <dest>/<archive base name>, so RaceMenu.bsa
// unpacks to <dest>/RaceMenu/interface/... . Zip files are read natively, a
// directory of loose files is copied, and other formats (.bsa, .ba2) go
// through a configured command template:
//
//	bsarch unpack {archive} {dest}
package extract
