/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

/*
Package importer converts local virtual machine images (OVA, VMDK, VHD,
VHDX, raw) into Amazon Machine Images using EC2 VM Import.

An import run is a fixed sequence of steps:

  - generate a unique bucket name
  - create the bucket in the target region
  - ensure the vmimport service role exists, creating it and waiting for
    IAM propagation when needed
  - upload the image with the S3 upload manager
  - start an import-image task
  - poll the task until it completes, fails or is cancelled

Importer.Run drives the steps and returns the produced image ID. Failures
come back as *PipelineError with the step that failed and every resource
the run created, which ResourceCleaner can delete.

All AWS access goes through the narrow S3API, IAMAPI, EC2API and STSAPI
interfaces so tests can substitute mocks.
*/
package importer
